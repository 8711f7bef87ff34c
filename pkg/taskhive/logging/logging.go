package logging

import (
	"github.com/sirupsen/logrus"
)

// Log is the logger used by the whole server.
var Log = logrus.New()

// Fields is the type of logrus.Fields.
type Fields = logrus.Fields

func init() {
	Log.SetLevel(logrus.InfoLevel)
	Log.SetFormatter(&logrus.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
	})
}
