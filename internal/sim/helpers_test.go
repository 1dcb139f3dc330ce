package sim

import (
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func newNullLogger() (*logrus.Logger, *test.Hook) {
	return test.NewNullLogger()
}
