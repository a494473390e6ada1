package domain

// LocationFromForward builds a Location from a forward geocoding match.
func LocationFromForward(r GeocodingResult) Location {
	country := r.Country
	if country == "" {
		country = UnknownCountry
	}
	return Location{
		Geo:     Geo{Lat: r.Lat, Lon: r.Lon},
		City:    r.Name,
		Country: country,
	}
}

// LocationFromReverse builds a Location for a device position. The position
// always comes from the device; the match only supplies display names.
// A nil match degrades to the placeholder names.
func LocationFromReverse(pos Geo, match *GeocodingResult) Location {
	loc := Location{
		Geo:     pos,
		City:    CurrentLocationName,
		Country: UnknownCountry,
	}
	if match == nil {
		return loc
	}
	if match.Name != "" {
		loc.City = match.Name
	}
	if match.Country != "" {
		loc.Country = match.Country
	}
	return loc
}
