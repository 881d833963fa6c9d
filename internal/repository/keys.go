package repository

import "github.com/Domenick1991/flightledger/internal/domain"

// The ledger keyspace is a closed set of key families, one constructor
// per family. The admin record sits on the instance tier ("i:"), all
// flight data on the persistent tier ("p:"). Route endpoints are interned
// tokens (no separator characters), so joining them with '>' is safe.
const (
	tierInstance   = "i:"
	tierPersistent = "p:"
)

func adminKey() []byte {
	return []byte(tierInstance + "admin")
}

func flightKey(id domain.FlightID) []byte {
	return []byte(tierPersistent + "flight:" + id.String())
}

func routeKey(src, dest string) []byte {
	return []byte(tierPersistent + "route:" + src + ">" + dest)
}

func globalKey() []byte {
	return []byte(tierPersistent + "global")
}

func passengerListKey(id domain.FlightID) []byte {
	return []byte(tierPersistent + "passengers:" + id.String())
}

func passengerRegistryKey(addr domain.Address) []byte {
	return []byte(tierPersistent + "passenger-flights:" + string(addr))
}
