// Package install writes Talos onto a Hetzner Robot machine booted into
// the rescue system and records the disk facts later used to render the
// node's machine config.
package install

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/imamik/talhybrid/internal/discovery"
	"github.com/imamik/talhybrid/internal/platform/talos"
	"github.com/imamik/talhybrid/internal/provisioning"
)

// DefaultDisks are the wipe targets on two-disk NVMe machines.
var DefaultDisks = []string{"/dev/nvme0n1", "/dev/nvme1n1"}

const (
	// Device majors hidden from lsblk during disk detection.
	excludedMajors = "1,7,11,14,15"
	imageDir       = "/tmp"
	byIDPrefix     = "/dev/disk/by-id/nvme-"
	rebootDelay    = 5 * time.Second
)

// ErrDiskDetection is returned when the primary disk cannot be determined.
var ErrDiskDetection = errors.New("disk detection failed")

// Executor runs one shell command on the target.
type Executor interface {
	Execute(ctx context.Context, command string) (string, error)
}

// Options describe one install run.
type Options struct {
	// Host is the public address of the target.
	Host string
	// Disks are wiped before the image is written.
	Disks []string
	// ImageURL is the factory metal ISO to write onto the primary disk.
	ImageURL string
	// DiscoveryDir receives <host>.yaml.
	DiscoveryDir string
	Reboot       bool
}

// Result is what the installer learned about the target.
type Result struct {
	PrimaryDisk   string
	Record        discovery.Record
	RecordPath    string
	SecondaryWWN  string
	Rebooted      bool
	ImageFileName string
}

// Installer runs the install procedure. Every step runs exactly once;
// a failing critical step stops the run and leaves the machine as it is.
type Installer struct {
	Exec     Executor
	Observer provisioning.Observer
	// Sleep waits before rebooting; tests replace it.
	Sleep func(context.Context, time.Duration) error
}

// ImageURL returns the metal ISO URL for a schematic and Talos version.
func ImageURL(factory *talos.FactoryClient, schematicID, version string) string {
	return factory.ImageURL(schematicID, version, talos.AssetMetalISO)
}

// Run installs Talos on opts.Host.
func (i *Installer) Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Host == "" || opts.ImageURL == "" || opts.DiscoveryDir == "" {
		return nil, fmt.Errorf("install needs a host, an image URL and a discovery directory")
	}
	disks := opts.Disks
	if len(disks) == 0 {
		disks = DefaultDisks
	}
	log := i.Observer.WithFields(map[string]string{"host": opts.Host})

	log.Printf("Stopping RAID arrays and LVM")
	for _, md := range []string{"/dev/md0", "/dev/md1", "/dev/md2"} {
		i.tolerant(ctx, log, "mdadm --stop "+md)
	}
	i.tolerant(ctx, log, "vgchange -an vg0")

	log.Printf("Wiping partition tables and signatures")
	for _, tool := range []string{"sgdisk --zap-all", "wipefs -a"} {
		for _, disk := range disks {
			if _, err := i.critical(ctx, log, tool+" "+disk); err != nil {
				return nil, err
			}
		}
	}

	out, err := i.critical(ctx, log, "lsblk -dn -o SERIAL,NAME,SIZE,TYPE -e "+excludedMajors)
	if err != nil {
		return nil, err
	}
	serial, device, err := PrimaryDisk(out)
	if err != nil {
		return nil, err
	}
	log.Printf("Primary disk /dev/%s (serial %s)", device, serial)

	image := path.Base(opts.ImageURL)
	file := path.Join(imageDir, image)
	steps := []string{
		"rm -f " + file,
		fmt.Sprintf("wget -q -O %s %q", file, opts.ImageURL),
		"test -s " + file,
		fmt.Sprintf("dd of=/dev/%s bs=4M oflag=sync if=%s", device, file),
	}
	log.Printf("Writing %s to /dev/%s", image, device)
	for _, step := range steps {
		if _, err := i.critical(ctx, log, step); err != nil {
			return nil, err
		}
	}

	res := &Result{PrimaryDisk: device, ImageFileName: image}
	res.Record.PrimaryDiskID = serial

	out, err = i.Exec.Execute(ctx, "lsblk -dn -o SERIAL,NAME,SIZE,TYPE,WWN -e "+excludedMajors)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Warnf("could not list disk WWNs, secondary disk left unset: %v", err)
	} else if wwn := SecondaryWWN(out, serial); wwn != "" {
		res.SecondaryWWN = wwn
		res.Record.SecondaryDisk = byIDPrefix + wwn
	} else {
		log.Warnf("no secondary disk found")
	}

	res.RecordPath, err = discovery.WriteRecord(opts.DiscoveryDir, opts.Host, res.Record)
	if err != nil {
		return nil, err
	}
	provisioning.LogResourceCreated(log, "install", "discovery record", res.RecordPath, serial)

	if opts.Reboot {
		log.Printf("Rebooting in %s", rebootDelay)
		if err := i.sleep(ctx, rebootDelay); err != nil {
			return nil, err
		}
		i.tolerant(ctx, log, "reboot")
		res.Rebooted = true
	}
	return res, nil
}

// PrimaryDisk picks the first line of sorted lsblk SERIAL,NAME output and
// returns its serial and device name.
func PrimaryDisk(lsblk string) (serial, device string, err error) {
	lines := nonEmptyLines(lsblk)
	if len(lines) == 0 {
		return "", "", fmt.Errorf("%w: lsblk returned no disks", ErrDiskDetection)
	}
	sort.Strings(lines)
	fields := strings.Fields(lines[0])
	if len(fields) < 2 {
		return "", "", fmt.Errorf("%w: cannot parse %q", ErrDiskDetection, lines[0])
	}
	return fields[0], fields[1], nil
}

// SecondaryWWN returns the WWN of the first disk in lsblk
// SERIAL,NAME,SIZE,TYPE,WWN output that is not the primary.
func SecondaryWWN(lsblk, primarySerial string) string {
	for _, line := range nonEmptyLines(lsblk) {
		fields := strings.Fields(line)
		if len(fields) >= 5 && !strings.Contains(line, primarySerial) {
			return fields[4]
		}
	}
	return ""
}

func nonEmptyLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}

func (i *Installer) tolerant(ctx context.Context, log provisioning.Observer, command string) {
	if _, err := i.Exec.Execute(ctx, command); err != nil {
		log.Warnf("%s failed, continuing: %v", command, err)
		return
	}
	log.Printf("ok: %s", command)
}

func (i *Installer) critical(ctx context.Context, log provisioning.Observer, command string) (string, error) {
	out, err := i.Exec.Execute(ctx, command)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("install step %q: %w", command, err)
	}
	log.Printf("ok: %s", command)
	return out, nil
}

func (i *Installer) sleep(ctx context.Context, d time.Duration) error {
	if i.Sleep != nil {
		return i.Sleep(ctx, d)
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
