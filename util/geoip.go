package util

import (
	"fmt"
	"net"
	"sync"

	"github.com/oschwald/geoip2-golang"
)

var (
	geoReader *geoip2.Reader
	geoMutex  sync.RWMutex
)

// InitGeoIP opens a MaxMind GeoLite2/GeoIP2 database for annotating audit
// events with a location. An empty path disables lookups; lookups stay
// disabled if the file cannot be opened.
func InitGeoIP(dbPath string) error {
	if dbPath == "" {
		return nil
	}
	reader, err := geoip2.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open geoip database: %w", err)
	}
	geoMutex.Lock()
	geoReader = reader
	geoMutex.Unlock()
	return nil
}

// CloseGeoIP closes the GeoIP database if one was opened.
func CloseGeoIP() {
	geoMutex.Lock()
	defer geoMutex.Unlock()
	if geoReader != nil {
		_ = geoReader.Close()
		geoReader = nil
	}
}

// GetIPLocation resolves city and country for an IP. Returns empty strings
// when no database is loaded or the IP is unknown.
func GetIPLocation(ip string) (string, string) {
	geoMutex.RLock()
	reader := geoReader
	geoMutex.RUnlock()
	if reader == nil {
		return "", ""
	}

	parsed := net.ParseIP(ip)
	if parsed == nil {
		return "", ""
	}

	record, err := reader.City(parsed)
	if err != nil {
		return "", ""
	}

	city := record.City.Names["en"]
	country := record.Country.Names["en"]
	return city, country
}
