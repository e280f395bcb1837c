//go:build !linux

package caps

type noopManager struct{}

func newPlatformManager() Manager { return noopManager{} }

func (noopManager) Available() []string { return nil }

func (noopManager) DropAll() error { return nil }
