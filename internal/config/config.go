package config

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

var Opts *Options

// Resolve makes the data directory absolute, creates it when missing and
// derives the database path from it when no explicit path was configured.
func Resolve(opts *Options) error {
	dataDir, err := checkDataDir(opts.Data)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error checking data directory: ", err)
		return err
	}

	derived := filepath.Join(opts.Data, defaultDBFileName)
	opts.Data = dataDir
	if opts.DSN == "" || opts.DSN == defaultDSN || opts.DSN == derived {
		opts.DSN = filepath.Join(opts.Data, defaultDBFileName)
	}
	return nil
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		absDir, err := filepath.Abs(dataDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err == nil {
		return dataDir, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}

	err := os.MkdirAll(dataDir, 0755)
	if err == nil {
		return dataDir, nil
	}
	if dataDir != defaultData || !errors.Is(err, os.ErrPermission) {
		return "", errors.Wrapf(err, "unable to create data folder %s", dataDir)
	}

	// Permission denied on the default location, fall back to the user's home directory
	currentUser, err := user.Current()
	if err != nil {
		return "", errors.Wrap(err, "unable to get current user")
	}
	if currentUser.HomeDir == "" {
		return "", errors.New("unable to get home directory")
	}
	homeData := filepath.Join(currentUser.HomeDir, ".e-editor")
	fmt.Fprintln(os.Stderr, "Permission denied, using data folder in user's home directory: ", homeData)
	if err := os.MkdirAll(homeData, 0755); err != nil {
		return "", errors.Wrapf(err, "unable to create default data folder %s", homeData)
	}
	return homeData, nil
}

// ParseFile reads a config file on top of the current options.
func ParseFile(file string) (*Options, error) {
	// Check if file exists
	if _, err := os.Stat(file); err != nil {
		return nil, errors.Wrapf(err, "unable to access config file %s", file)
	}
	if Opts == nil {
		GetDefaultOptions()
	}

	v := viper.New()
	v.SetConfigFile(file)
	v.SetEnvPrefix("E_EDITOR")
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "unable to read config file %s", file)
	}
	if err := v.Unmarshal(Opts); err != nil {
		return nil, errors.Wrap(err, "unable to decode config")
	}
	return Opts, nil
}
