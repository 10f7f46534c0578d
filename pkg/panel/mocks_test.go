package panel

import (
	"fyne.io/fyne/v2"
	"github.com/stretchr/testify/mock"

	"github.com/kaedenn/kext/asset"
	"github.com/kaedenn/kext/config"
	"github.com/kaedenn/kext/pkg/ui"
)

// MockPluginManager implements ui.PluginManager for testing
type MockPluginManager struct {
	mock.Mock
}

func (m *MockPluginManager) Register(p ui.Plugin) {
	m.Called(p)
}

func (m *MockPluginManager) Deregister(p ui.Plugin) {
	m.Called(p)
}

func (m *MockPluginManager) NotifyUser(title, message string) {
	m.Called(title, message)
}

func (m *MockPluginManager) RegisterNotifier(n ui.Notifier) {
	m.Called(n)
}

func (m *MockPluginManager) InsertButton(box ui.PanelBox, label string, icon fyne.Resource, onPress func()) error {
	args := m.Called(box, label, icon, onPress)
	return args.Error(0)
}

func (m *MockPluginManager) RemoveButton(label string) {
	m.Called(label)
}

func (m *MockPluginManager) OpenDialog(cfg ui.DialogConfig) {
	m.Called(cfg)
}

func (m *MockPluginManager) GetPreferences() *config.AppConfig {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*config.AppConfig)
}

func (m *MockPluginManager) GetAssetManager() *asset.Manager {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*asset.Manager)
}
