package errchan_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestErrchan(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Error Channel Suite")
}
