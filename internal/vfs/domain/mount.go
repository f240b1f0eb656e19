package domain

// MountEntry binds a path prefix to the driver owning that namespace.
// No two entries may share an identical prefix; nested prefixes are allowed
// and resolved by longest-segment match.
type MountEntry struct {
	Prefix string
	Driver Driver
}

// MountInfo is the external view of a mount entry, exposed by the admin
// surface without leaking the driver instance.
type MountInfo struct {
	Prefix     string `json:"prefix"`
	DriverName string `json:"driver_name"`
}
