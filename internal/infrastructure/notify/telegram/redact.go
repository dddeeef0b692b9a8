package telegram

import (
	"errors"
	"net/url"
)

// redact strips the request URL (which carries the bot token) from
// transport errors.
func redact(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return uerr.Err
	}
	return err
}
