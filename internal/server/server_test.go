package server

import (
	"testing"

	glog "github.com/labstack/gommon/log"
)

func TestLogLevel(t *testing.T) {
	cases := []struct {
		name string
		want glog.Lvl
	}{
		{"debug", glog.DEBUG},
		{"DEBUG", glog.DEBUG},
		{"info", glog.INFO},
		{"warn", glog.WARN},
		{"warning", glog.WARN},
		{"error", glog.ERROR},
		{" info ", glog.INFO},
		{"", glog.INFO},
		{"verbose", glog.INFO},
	}
	for _, tc := range cases {
		if got := logLevel(tc.name); got != tc.want {
			t.Fatalf("logLevel(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}
