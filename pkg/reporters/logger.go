package reporters

import "github.com/classly-hq/classly-networking/pkg/network"

// Logger is the logging surface reporters share with the network manager.
type Logger = network.Logger

func ensureLogger(log Logger) Logger {
	if log == nil {
		return network.Discard
	}
	return log
}
