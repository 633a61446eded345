package options

// ShowcaseOptions holds the command-line flags.
type ShowcaseOptions struct {
	Manifest   *string
	Page       *string
	Help       *bool
	Mode       *string // live, record or list
	Duration   *float64
	FPS        *int
	Width      *int
	Height     *int
	OutputFile *string
	FFMPEGPath *string
	LowRes     *string // on, off or auto
	Watch      *bool   // rebuild the page program when its shader files change
	Verbose    *bool
}
