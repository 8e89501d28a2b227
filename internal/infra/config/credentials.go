package config

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	defaultAdminUsername = "admin"
	defaultAdminPassword = "admin"
)

type credentialsFile struct {
	Admin struct {
		Username string `json:"username"`
		Password string `json:"password"`
	} `json:"admin"`
}

// FileCredentials reads the admin login from a JSON file on every call, so
// edits take effect without a restart. A missing or broken file falls back
// to admin/admin.
type FileCredentials struct {
	path   string
	logger *logrus.Entry
}

func NewFileCredentials(path string, logger *logrus.Entry) *FileCredentials {
	return &FileCredentials{path: path, logger: logger}
}

func (f *FileCredentials) AdminCredentials() (string, string, error) {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		f.logger.WithError(err).WithField("path", f.path).Warn("Admin credentials file unreadable, using default credentials")
		return defaultAdminUsername, defaultAdminPassword, nil
	}

	var parsed credentialsFile
	if err := json.Unmarshal(raw, &parsed); err != nil {
		f.logger.WithError(err).WithField("path", f.path).Warn("Admin credentials file is not valid JSON, using default credentials")
		return defaultAdminUsername, defaultAdminPassword, nil
	}
	username := strings.TrimSpace(parsed.Admin.Username)
	if username == "" || parsed.Admin.Password == "" {
		f.logger.WithField("path", f.path).Warn("Admin credentials incomplete, using default credentials")
		return defaultAdminUsername, defaultAdminPassword, nil
	}
	return username, parsed.Admin.Password, nil
}
