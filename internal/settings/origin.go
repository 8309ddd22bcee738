package settings

import "edna/internal/enum"

// Origin identifies where a parameter's current value came from. Sources are
// ordered by authority: an incoming value only lands when its origin is
// strictly higher than the parameter's current one.
type Origin int

const (
	OriginDefault     Origin = 0
	OriginFile        Origin = 1
	OriginLoad        Origin = 2
	OriginEnvironment Origin = 3
	OriginOverride    Origin = 4
	OriginConstant    Origin = 5

	// OriginError marks a parameter whose last input failed to parse. It
	// outranks every source so the broken state stays visible.
	OriginError Origin = 10
)

var originInfo = enum.MustInfo("Origin", map[Origin]string{
	OriginDefault:     "Default",
	OriginFile:        "File",
	OriginLoad:        "Load",
	OriginEnvironment: "Environment",
	OriginOverride:    "Override",
	OriginConstant:    "Constant",
})

func (o Origin) String() string {
	if o == OriginError {
		return "Error"
	}
	return originInfo.Name(o)
}

// Prefix returns the bracketed tag console listings put in front of each
// parameter row.
func (o Origin) Prefix() string {
	switch o {
	case OriginDefault:
		return "[D] "
	case OriginFile:
		return "[F] "
	case OriginLoad:
		return "[L] "
	case OriginEnvironment:
		return "[E] "
	case OriginOverride:
		return "[O] "
	case OriginConstant:
		return "[C] "
	default:
		return "[!] "
	}
}

// Verbosity controls how chatty Setup is after loading a file.
type Verbosity int

const (
	// Quiet loads without printing anything.
	Quiet Verbosity = iota
	// Show prints the resulting configuration to stdout.
	Show
	// Paranoid behaves like Show; confirming the values is the caller's
	// business.
	Paranoid
)

var verbosityInfo = enum.MustInfo("Verbosity", map[Verbosity]string{
	Quiet:    "Quiet",
	Show:     "Show",
	Paranoid: "Paranoid",
})

func (v Verbosity) String() string {
	if !verbosityInfo.Valid(v) {
		return "Quiet"
	}
	return verbosityInfo.Name(v)
}

// ParseVerbosity reads a verbosity by name, ignoring case.
func ParseVerbosity(s string) (Verbosity, error) {
	return verbosityInfo.Parse(s)
}

// VerbosityNames lists the accepted verbosity names for usage strings.
func VerbosityNames() []string {
	return verbosityInfo.Names()
}
