package dto

import "time"

type PluginInfo struct {
	Name         string
	Version      string
	Enabled      bool
	Binary       string
	Capabilities []string
}

type DoctorResult struct {
	Name            string
	BinaryReachable bool
	ChecksumValid   bool
	LifecycleOK     bool
	Error           string
}

type EventInput struct {
	Kind       string
	Goal       string
	ActionText string
	Minutes    int
	At         time.Time
}

type DispatchResult struct {
	Plugin    string
	Delivered bool
	Error     string
}
