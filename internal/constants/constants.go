package constants

const (
	// TMDBBaseURL is the default base URL for the TMDB v3 API.
	TMDBBaseURL = "https://api.themoviedb.org/3"

	// OMDBBaseURL is the default base URL for the OMDb API.
	OMDBBaseURL = "https://www.omdbapi.com"

	// DefaultUserAgent identifies this tool to the remote catalog services.
	DefaultUserAgent = "nfogen v1.0"

	// DefaultLanguage is the catalog language used when none is configured.
	DefaultLanguage = "fr-FR"

	// DefaultReleaseGroup is the group tag appended to conventional release names.
	DefaultReleaseGroup = "TSC"
)
