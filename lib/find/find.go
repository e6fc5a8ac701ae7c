// Package find locates USB serial devices by scanning /sys, so the example
// programs can default to the instrument's port without hardcoding a device
// path.
package find

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
)

type FilterFn func(*Usbtty) bool

// AnapicoFilter matches the USB-CDC port an Anapico synthesizer enumerates
// as.
func AnapicoFilter(ut *Usbtty) bool {
	return strings.Contains(ut.Mfg, "AnaPico")
}

// SerialFilter matches a device by its USB serial number.
func SerialFilter(s string) FilterFn {
	return func(ut *Usbtty) bool { return ut.Serial == s }
}

// Find searches for a USB serial device. If filter is not nil, the first
// device it accepts (if any) is chosen. Find fails when no device matches or
// when, absent a filter, more than one candidate remains.
func Find(filter FilterFn) (string, error) {
	ttys, err := AllUsbTtys()
	if err != nil {
		return "", err
	}
	if filter != nil {
		for i := range ttys {
			if filter(&ttys[i]) {
				return ttys[i].Dev, nil
			}
		}
		return "", fmt.Errorf("no matching ttys found")
	}

	switch len(ttys) {
	case 0:
		return "", fmt.Errorf("no usb ttys found")
	case 1:
		return ttys[0].Dev, nil
	default:
		return "", fmt.Errorf("multiple ttys: %v", ttys)
	}
}

// Usbtty describes one tty backed by a USB device.
type Usbtty struct {
	Dev, Path string
	IDp, IDv  string
	Mfg, Prod string
	Serial    string
}

func (u Usbtty) String() string {
	return fmt.Sprintf("dev %s path %s pid/vid %s/%s mfg/prod %s/%s serial %s",
		u.Dev, u.Path, u.IDp, u.IDv, u.Mfg, u.Prod, u.Serial)
}

// AllUsbTtys lists ttys on USB devices by following the symlinks under
// /sys/class/tty.
func AllUsbTtys() ([]Usbtty, error) {
	const sct = "/sys/class/tty/"
	entries, err := os.ReadDir(sct)
	if err != nil {
		return nil, err
	}
	var devs []Usbtty
	for _, e := range entries {
		if e.Type()&fs.ModeSymlink == 0 {
			continue
		}
		// A symlink like /sys/class/tty/ttyACM0 resolves to a path under the
		// owning device, e.g. .../usb1/1-10/1-10:1.0/tty/ttyACM0.
		abs, err := filepath.EvalSymlinks(filepath.Join(sct, e.Name()))
		if err != nil {
			log.Printf("error evaluating symlink for %s; skipping: %s", e.Name(), err)
			continue
		}
		if !strings.Contains(abs, "usb") {
			continue
		}
		dev, err := filepath.EvalSymlinks(filepath.Join(abs, "device"))
		if err != nil {
			log.Printf("usb tty %s lacking device subdir: %s", abs, err)
			continue
		}
		// The descriptor files live one level above the interface directory.
		info, err := readUsbInfo(filepath.Dir(dev))
		if err != nil {
			log.Printf("%s: %s", abs, err)
		}
		devs = append(devs, Usbtty{
			Dev:    e.Name(),
			Path:   abs,
			IDp:    info["idProduct"],
			IDv:    info["idVendor"],
			Mfg:    info["manufacturer"],
			Prod:   info["product"],
			Serial: info["serial"],
		})
	}
	return devs, nil
}

// readUsbInfo reads the USB descriptor files under dev. It returns the last
// error encountered, ignoring os.ErrNotExist; errors do not prevent
// returning the data collected.
func readUsbInfo(dev string) (map[string]string, error) {
	var err error
	info := make(map[string]string)
	for _, name := range []string{"idProduct", "idVendor", "manufacturer", "product", "serial"} {
		b, rerr := os.ReadFile(filepath.Join(dev, name))
		if rerr != nil && !errors.Is(rerr, os.ErrNotExist) {
			err = rerr
		}
		info[name] = strings.TrimSpace(string(b))
	}
	return info, err
}
