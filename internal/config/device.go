package config

import (
	"fmt"
	"strings"
)

const (
	DeviceCPU    = "cpu"
	DeviceWebGPU = "webgpu"
)

func NormalizeDevice(raw string) (string, error) {
	device := strings.ToLower(strings.TrimSpace(raw))
	if device == "" {
		device = DeviceCPU
	}
	switch device {
	case DeviceCPU, DeviceWebGPU:
		return device, nil
	case "gpu", "wgpu":
		return DeviceWebGPU, nil
	default:
		return "", fmt.Errorf("invalid device %q (expected %s|%s)", raw, DeviceCPU, DeviceWebGPU)
	}
}
