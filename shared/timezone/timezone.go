package timezone

import (
	"hotel/config"
	"time"

	"github.com/rs/zerolog/log"
)

var appLocation = time.UTC

func init() {
	appLocation = Load(config.Get().App.Timezone)
}

// Load resolves an IANA zone name such as "Asia/Jakarta". Unknown or empty names resolve to UTC.
func Load(name string) *time.Location {
	if name == "" {
		log.Warn().Msg("No hotel timezone configured, stay dates use UTC")

		return time.UTC
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Error().Err(err).Str("timezone", name).Msg("Unknown hotel timezone, stay dates use UTC")

		return time.UTC
	}

	log.Info().Str("timezone", loc.String()).Msg("Hotel timezone loaded")

	return loc
}

func GetLocation() *time.Location {
	return appLocation
}

func Now() time.Time {
	return time.Now().In(appLocation)
}

// ToAppTime moves t onto the hotel's wall clock.
func ToAppTime(t time.Time) time.Time {
	return t.In(appLocation)
}

// Parse reads value as hotel wall-clock time when the layout carries no zone.
func Parse(layout, value string) (time.Time, error) {
	return time.ParseInLocation(layout, value, appLocation) //nolint:wrapcheck
}

func Format(t time.Time, layout string) string {
	return ToAppTime(t).Format(layout)
}

// StartOfDay is midnight of t's calendar day at the hotel. Stay lengths are counted between
// these boundaries.
func StartOfDay(t time.Time) time.Time {
	local := ToAppTime(t)

	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, appLocation)
}

// EndOfDay is the last instant of t's calendar day at the hotel.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}
