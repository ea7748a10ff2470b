package daemon

import (
	"testing"

	"github.com/pilebones/go-udev/netlink"

	"discd/internal/disc"
	"discd/internal/logging"
)

func TestExtractDeviceName(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"devname", map[string]string{"DEVNAME": "/dev/sr0"}, "/dev/sr0"},
		{"devpath fallback", map[string]string{"DEVPATH": "/devices/pci0000:00/block/sr1"}, "/dev/sr1"},
		{"empty", map[string]string{}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := extractDeviceName(netlink.UEvent{Env: tc.env})
			if got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestNetlinkHandleEventFiltersDevices(t *testing.T) {
	drive := &fakeDrive{toc: twoTrackTOC(), status: disc.DriveStatusDiscOK}
	p := testPlayer(t, drive, nil)
	cfg := testConfig(t)
	monitor := newNetlinkMonitor(cfg, p, logging.NewNop())

	// Events for other devices are ignored; the configured device clears the
	// TOC cache. Neither should panic with no connection established.
	monitor.handleEvent(netlink.UEvent{Env: map[string]string{"DEVNAME": "/dev/sdb"}})
	monitor.handleEvent(netlink.UEvent{Env: map[string]string{"DEVNAME": cfg.Drive.Device}})
}
