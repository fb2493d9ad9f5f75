package persistence

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	LogFile      = "log.jsonl"
	GlobalsFile  = "globals.yaml"
	TelegramFile = "telegram.yaml"
)

// ErrInvalidName is returned for campaign names that would escape the
// campaigns directory.
var ErrInvalidName = errors.New("invalid campaign name")

// CampaignManager bridges configuration settings with local file organization.
type CampaignManager struct {
	CampaignsDir string
}

// NewCampaignManager returns a manager rooted at campaignsDir.
func NewCampaignManager(campaignsDir string) *CampaignManager {
	return &CampaignManager{CampaignsDir: campaignsDir}
}

func validName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// GetCampaignPath produces safe joined dir paths.
func (c *CampaignManager) GetCampaignPath(name string) string {
	return filepath.Join(c.CampaignsDir, name)
}

// GetLogPath returns the path to the event log of a campaign.
func (c *CampaignManager) GetLogPath(name string) string {
	return filepath.Join(c.GetCampaignPath(name), LogFile)
}

// GetTelegramPath returns the path to the chat settings of a campaign.
func (c *CampaignManager) GetTelegramPath(name string) string {
	return filepath.Join(c.GetCampaignPath(name), TelegramFile)
}

// Create makes the campaign directory and opens a fresh journal in it.
func (c *CampaignManager) Create(name string) (*Store, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	path := c.GetCampaignPath(name)
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return NewStore(c.GetLogPath(name))
}

// Load opens the journal of an existing campaign.
func (c *CampaignManager) Load(name string) (*Store, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	path := c.GetCampaignPath(name)
	if stat, err := os.Stat(path); err != nil || !stat.IsDir() {
		return nil, fmt.Errorf("campaign folder not found: %s", path)
	}
	return NewStore(c.GetLogPath(name))
}

// List returns the campaign names found on disk, sorted.
func (c *CampaignManager) List() ([]string, error) {
	entries, err := os.ReadDir(c.CampaignsDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}
