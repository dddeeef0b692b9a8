// Package env loads dotenv files into the process environment before the
// command line is parsed.
package env

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

const defaultAppEnv = "dev"

// Result tells which dotenv files were applied.
type Result struct {
	AppEnv  string
	Loaded  []string
	Skipped []string
}

// Load reads dir/.env without overriding variables that are already set,
// then dir/.env.$APP_ENV overriding anything before it. Missing files are
// not an error; unreadable or malformed ones are.
func Load(dir string) (Result, error) {
	appEnv := os.Getenv("APP_ENV")
	if appEnv == "" {
		appEnv = defaultAppEnv
	}
	res := Result{AppEnv: appEnv}

	base := filepath.Join(dir, ".env")
	if err := apply(godotenv.Load, base); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return res, err
		}
		res.Skipped = append(res.Skipped, base)
	} else {
		res.Loaded = append(res.Loaded, base)
	}

	overlay := filepath.Join(dir, ".env."+appEnv)
	if err := apply(godotenv.Overload, overlay); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return res, err
		}
		res.Skipped = append(res.Skipped, overlay)
	} else {
		res.Loaded = append(res.Loaded, overlay)
	}

	return res, nil
}

func apply(loader func(...string) error, path string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}
	if err := loader(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
