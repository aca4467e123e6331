package config

import (
	"testing"

	"go.viam.com/ecubench/testutils"
)

func TestMain(m *testing.M) {
	testutils.VerifyTestMain(m)
}
