package harddisk_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestHardDisk(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "HardDisk Suite")
}
