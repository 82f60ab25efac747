package config

import "os"

func IsDebug() bool {
	return os.Getenv("CHATGATE_DEBUG") == "1"
}
