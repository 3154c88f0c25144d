package devices

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/pilebones/go-udev/crawler"
	"github.com/pilebones/go-udev/netlink"
)

// capturePCM matches ALSA capture PCM nodes such as snd/pcmC1D0c.
var capturePCM = regexp.MustCompile(`^snd/pcmC([0-9]+)D([0-9]+)c$`)

// UdevEnumerator crawls sysfs for ALSA capture PCMs.
type UdevEnumerator struct {
	// SysRoot overrides /sys for card name lookups.
	SysRoot string
}

// Enumerate walks existing devices and returns one entry per capture PCM,
// ordered by card then device.
func (u *UdevEnumerator) Enumerate(ctx context.Context) ([]Device, error) {
	queue := make(chan crawler.Device)
	errs := make(chan error, 1)
	quit := crawler.ExistingDevices(queue, errs, captureMatcher())

	var (
		found    []Device
		crawlErr error
	)
	for {
		select {
		case <-ctx.Done():
			close(quit)
			return nil, ctx.Err()
		case err := <-errs:
			if err != nil {
				crawlErr = errors.Join(crawlErr, err)
			}
		case dev, ok := <-queue:
			if !ok {
				if len(found) == 0 && crawlErr != nil {
					return nil, fmt.Errorf("crawl sound devices: %w", crawlErr)
				}
				sortDevices(found)
				return found, nil
			}
			if d, ok := u.fromEnv(dev.Env); ok {
				found = append(found, d)
			}
		}
	}
}

func captureMatcher() netlink.Matcher {
	rules := &netlink.RuleDefinitions{}
	rules.AddRule(netlink.RuleDefinition{
		Env: map[string]string{
			"DEVNAME": capturePCM.String(),
		},
	})
	_ = rules.Compile()
	return rules
}

// fromEnv converts a uevent environment into a Device.
func (u *UdevEnumerator) fromEnv(env map[string]string) (Device, bool) {
	m := capturePCM.FindStringSubmatch(env["DEVNAME"])
	if m == nil {
		return Device{}, false
	}
	card, _ := strconv.Atoi(m[1])
	dev, _ := strconv.Atoi(m[2])
	id := fmt.Sprintf("hw:%d,%d", card, dev)
	name := u.cardName(card)
	if name == "" {
		name = id
	} else if dev > 0 {
		name = fmt.Sprintf("%s #%d", name, dev)
	}
	return Device{ID: id, Name: name}, true
}

func (u *UdevEnumerator) cardName(card int) string {
	root := u.SysRoot
	if root == "" {
		root = "/sys"
	}
	data, err := os.ReadFile(filepath.Join(root, "class", "sound", fmt.Sprintf("card%d", card), "id"))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func sortDevices(list []Device) {
	slices.SortFunc(list, func(a, b Device) int {
		return strings.Compare(a.ID, b.ID)
	})
}
