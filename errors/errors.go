package errors

import "fmt"

var (
	ErrWorkerPanic            = fmt.Errorf("worker panic")
	ErrDuplicateParticipant   = fmt.Errorf("participant already registered")
	ErrUnknownParticipant     = fmt.Errorf("participant not registered")
	ErrAlreadyRecorded        = fmt.Errorf("pairing already recorded for this round")
	ErrRoomProvisioningFailed = fmt.Errorf("room provisioning failed")
	ErrRoomNotFound           = fmt.Errorf("room not found")
	ErrInvalidStateTransition = fmt.Errorf("invalid event state transition")
	ErrUnknownEvent           = fmt.Errorf("event not configured")
)
