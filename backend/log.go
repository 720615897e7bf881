package backend

import (
	"github.com/kunhe0330/macolor-claude/logging"
	"github.com/sirupsen/logrus"
)

var log *logrus.Logger

func init() {
	log = logging.GetLogger()
}
