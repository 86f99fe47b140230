package usecase

import "api-music/domain/model"

// SelectBestAudio returns the URL of the highest quality audio-only format.
// Equal qualities keep the earliest format so the choice is stable for a given list.
func SelectBestAudio(formats []model.DeliveryFormat) (string, error) {
	best := -1
	for i, format := range formats {
		if !format.IsAudioOnly() {
			continue
		}
		if best < 0 || format.Quality > formats[best].Quality {
			best = i
		}
	}

	if best < 0 {
		return "", model.ErrNoPlayableFormat
	}
	return formats[best].URL, nil
}
