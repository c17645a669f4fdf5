package sequence

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatCode(t *testing.T) {
	code, err := formatCode(LicensePrefix, "261018", 1)
	require.NoError(t, err)
	require.Regexp(t, regexp.MustCompile(`^LIC-261018-001[A-Z2-9]{2}$`), code)

	code, err = formatCode(LicensePrefix, "261018", 36*36*36)
	require.NoError(t, err)
	require.Regexp(t, regexp.MustCompile(`^LIC-261018-1000[A-Z2-9]{2}$`), code)
}
