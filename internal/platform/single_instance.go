package platform

import (
	"errors"
	"fmt"
	"hash/fnv"
	"net"
	"sync"
)

// ErrAlreadyRunning indicates another deepwork process already holds the lock.
var ErrAlreadyRunning = errors.New("instance already running")

const (
	minLockPort = 20000
	maxLockPort = 39999
)

// InstanceGuard holds the single-instance lock. Only one scheduler may be
// active per machine, so the desktop and terminal front ends share it.
type InstanceGuard struct {
	once     sync.Once
	listener net.Listener
	address  string
}

// AcquireSingleInstance binds a localhost port derived from appName.
func AcquireSingleInstance(appName string) (*InstanceGuard, error) {
	address := fmt.Sprintf("127.0.0.1:%d", LockPort(appName))
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrAlreadyRunning, address, err)
	}
	return &InstanceGuard{listener: listener, address: address}, nil
}

// Release frees the lock. Calling it more than once is safe.
func (guard *InstanceGuard) Release() error {
	if guard == nil || guard.listener == nil {
		return nil
	}
	var err error
	guard.once.Do(func() {
		err = guard.listener.Close()
	})
	return err
}

// Address returns the bound address.
func (guard *InstanceGuard) Address() string {
	if guard == nil {
		return ""
	}
	return guard.address
}

// LockPort returns the deterministic lock port for appName.
func LockPort(appName string) int {
	hash := fnv.New32a()
	_, _ = hash.Write([]byte(appName))
	rangeSize := maxLockPort - minLockPort + 1
	return minLockPort + int(hash.Sum32()%uint32(rangeSize))
}
