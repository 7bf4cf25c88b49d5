// Package endpoint parses store addresses of the form
//
//	[redis://][user:password@]host[:port][/database][/keyname]
//
// into an immutable Endpoint.
package endpoint

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

const (
	// Scheme is the only scheme accepted (and emitted) by Parse.
	Scheme = "redis://"

	// DefaultPort is used when the address carries no port.
	DefaultPort = "6379"
)

// ErrAddressFormat is returned for any address Parse cannot accept.
var ErrAddressFormat = errors.New("redis uri format error")

// Endpoint identifies one database of a store instance and optionally a key in it.
type Endpoint struct {
	Host     string
	Port     string
	Username string
	Password string
	DB       int
	// Key is the key name carried by the address, empty when absent.
	Key string

	netloc string
}

// Parse validates address and returns its Endpoint.
//
// The network location (userinfo included) must contain a dot. Zero, one or two
// path segments are accepted: none selects database 0, one is the database
// index, two are the database index and a key name. The key name is taken
// verbatim, without percent decoding.
func Parse(address string) (Endpoint, error) {
	trimmed := strings.Trim(strings.TrimSpace(address), "/")
	netloc, path, _ := strings.Cut(strings.TrimPrefix(trimmed, Scheme), "/")
	if !strings.Contains(netloc, ".") {
		return Endpoint{}, formatError(address)
	}

	u, err := url.Parse(Scheme + netloc)
	if err != nil || u.Hostname() == "" || u.Path != "" {
		return Endpoint{}, formatError(address)
	}

	ep := Endpoint{
		Host: u.Hostname(),
		Port: u.Port(),
	}
	if ep.Port == "" {
		ep.Port = DefaultPort
	}
	if u.User != nil {
		ep.Username = u.User.Username()
		ep.Password, _ = u.User.Password()
	}

	if path != "" {
		segments := strings.Split(path, "/")
		if len(segments) > 2 {
			return Endpoint{}, formatError(address)
		}
		db, err := parseDB(segments[0])
		if err != nil {
			return Endpoint{}, formatError(address)
		}
		ep.DB = db
		if len(segments) == 2 {
			ep.Key = segments[1]
		}
	}

	ep.netloc = u.Host
	if u.User != nil {
		ep.netloc = u.User.String() + "@" + u.Host
	}
	return ep, nil
}

// IsAddress reports whether value is written as a full address rather than a bare key.
func IsAddress(value string) bool {
	return strings.HasPrefix(value, Scheme)
}

// URI returns the normalized address without the key, e.g. redis://10.0.0.1:6379/2.
func (e Endpoint) URI() string {
	return fmt.Sprintf("%s%s/%d", Scheme, e.netloc, e.DB)
}

// Addr returns host:port for dialing.
func (e Endpoint) Addr() string {
	return net.JoinHostPort(e.Host, e.Port)
}

func parseDB(segment string) (int, error) {
	if segment == "" {
		return 0, errors.New("empty database segment")
	}
	db, err := strconv.Atoi(segment)
	if err != nil {
		return 0, err
	}
	if db < 0 {
		return 0, fmt.Errorf("negative database index %d", db)
	}
	return db, nil
}

func formatError(address string) error {
	return fmt.Errorf("%w: %s", ErrAddressFormat, address)
}
