package ui

// Plugin is the interface that must be implemented by all plugins.
type Plugin interface {
	Name() string       // Returns the plugin's name.
	Init(PluginManager) // Injects the plugin manager.
	Activate()          // Called to activate the plugin.
	Deactivate()        // Called to deactivate the plugin.
}

// Notifier is a function that notifies the user.
type Notifier func(title, message string)
