package utils

import (
	"github.com/denisbrodbeck/machineid"
	"github.com/google/uuid"
)

// HWID identifies this machine without exposing the raw machine id. Hosts
// without a readable machine id get a random per-process id.
var HWID = hwid()

func hwid() string {
	id, err := machineid.ProtectedID("syncfolders")
	if err != nil || id == "" {
		return uuid.NewString()
	}
	return id
}
