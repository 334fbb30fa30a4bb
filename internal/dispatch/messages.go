package dispatch

const (
	msgWelcome          = "Welcome! Open a shared link, or send a title to search the library."
	msgNotFound         = "Sorry, that title could not be found."
	msgNotReady         = "That title is not available yet. Please try again later."
	msgNoSeasons        = "No seasons are available for this series yet."
	msgNoEpisodes       = "No episodes are available for this season yet."
	msgFailure          = "Something went wrong. Please try again."
	msgChooseSeason     = "%s\nChoose a season:"
	msgChooseEpisode    = "%s - Season %d\nChoose an episode:"
	msgMovieDelivered   = "🎬 %s (%d)\nEnjoy!"
	msgEpisodeDelivered = "📺 %s S%02dE%02d\nEnjoy!"
	msgNoMatches        = "No titles matched %q."
	msgSearchResults    = "Results for %q:"
)
