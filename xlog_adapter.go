// Copyright The ActForGood Authors.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://github.com/actforgood/xenv/blob/main/LICENSE.

package xenv

import (
	"github.com/actforgood/xlog"
)

// LoadWithLogger sets a logger on the load call.
// Each field's resolution is traced at debug level, with the field name,
// the variable name looked up, and the origin of the value used
// (environ / defaults / typed-default / absent).
func LoadWithLogger(logger xlog.Logger) LoadOption {
	return func(settings *loadSettings) {
		settings.logger = logger
	}
}

// LogLoadErrorHandler returns a handler that logs a failed load with a
// xlog.Logger. Passed parameter is a function that returns the logger
// (Logger and configuration depend one of each other at application
// bootstrap, this way we can instantiate them separately...).
//
//	if err := xenv.Load(&cfg); err != nil {
//		xenv.LogLoadErrorHandler(loggerGetter)(err)
//	}
func LogLoadErrorHandler(loggerGetter func() xlog.Logger) func(error) {
	return func(err error) {
		loggerGetter().Error(
			xlog.MessageKey, "[xenv] could not load configuration",
			xlog.ErrorKey, xlog.StackErr(err),
		)
	}
}
