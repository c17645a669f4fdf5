package taskname

const (
	// License tasks
	LicenseExpiryScan = "license:expiry:scan"
)
