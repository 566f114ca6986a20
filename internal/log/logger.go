package log

import (
	"go.uber.org/zap"
)

var base *zap.Logger = zap.NewNop()

// Init builds the process logger (prod=false → dev console encoder) and
// installs it as the package default.
func Init(prod bool) (*zap.Logger, error) {
	var (
		l   *zap.Logger
		err error
	)
	if prod {
		l, err = zap.NewProduction()
	} else {
		l, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, err
	}
	base = l
	return l, nil
}

// L returns the current process logger.
func L() *zap.Logger { return base }

func Sync() { _ = base.Sync() }
