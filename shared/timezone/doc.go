// Package timezone pins every calendar computation to the hotel's configured zone
// (APP_TIMEZONE, an IANA name such as "Asia/Jakarta").
//
// Check-in dates are truncated to the local day, date-only filters such as startDate and
// endDate are parsed as local midnight, and monthly revenue is grouped by local month.
// The zone is resolved once, when the package loads.
package timezone
