package address

// Program identities. Records are owned by exactly one of these.
var (
	MarketplaceProgram = ProgramID("marketplace")
	MinterProgram      = ProgramID("minter")
	PlatformProgram    = ProgramID("platform")

	SystemProgram   = ProgramID("system")
	TokenProgram    = ProgramID("token")
	MetadataProgram = ProgramID("metadata")
)

// ProgramName returns the registered name for a program address, or "" if
// the address is not a known program.
func ProgramName(a Address) string {
	switch a {
	case MarketplaceProgram:
		return "marketplace"
	case MinterProgram:
		return "minter"
	case PlatformProgram:
		return "platform"
	case SystemProgram:
		return "system"
	case TokenProgram:
		return "token"
	case MetadataProgram:
		return "metadata"
	}
	return ""
}

// Seed converts a namespace tag or text component into a seed.
func Seed(s string) []byte { return []byte(s) }
