package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputePlacement(t *testing.T) {
	tests := []struct {
		name    string
		agency  PartyStatus
		admin   PartyStatus
		client  PartyStatus
		want    PlacementStatus
	}{
		{"all accepted", PartyStatusAccepted, PartyStatusAccepted, PartyStatusAccepted, PlacementPlaced},
		{"two accepted one pending", PartyStatusAccepted, PartyStatusAccepted, PartyStatusPending, PlacementInProgress},
		{"agency rejected", PartyStatusRejected, PartyStatusAccepted, PartyStatusAccepted, PlacementRejected},
		{"admin rejected", PartyStatusAccepted, PartyStatusRejected, PartyStatusSubmitted, PlacementRejected},
		{"client rejected", PartyStatusAccepted, PartyStatusAccepted, PartyStatusRejected, PlacementRejected},
		{"all pending", PartyStatusPending, PartyStatusPending, PartyStatusPending, PlacementInProgress},
		{"needs revision is not terminal", PartyStatusNeedsRevision, PartyStatusAccepted, PartyStatusAccepted, PlacementInProgress},
		{"submitted is not placed", PartyStatusSubmitted, PartyStatusAccepted, PartyStatusAccepted, PlacementInProgress},
		{"rejected wins over accepted", PartyStatusRejected, PartyStatusRejected, PartyStatusRejected, PlacementRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputePlacement(tt.agency, tt.admin, tt.client)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsValidPartyStatus(t *testing.T) {
	for _, s := range []PartyStatus{PartyStatusPending, PartyStatusSubmitted, PartyStatusAccepted, PartyStatusRejected, PartyStatusNeedsRevision} {
		assert.True(t, IsValidPartyStatus(s), string(s))
	}
	assert.False(t, IsValidPartyStatus("APPROVED"))
	assert.False(t, IsValidPartyStatus(""))
}

func TestUpdatePartyStatusRequestValidate(t *testing.T) {
	valid := UpdatePartyStatusRequest{Status: PartyStatusAccepted}
	assert.NoError(t, valid.Validate())

	invalid := UpdatePartyStatusRequest{Status: "MAYBE"}
	assert.Error(t, invalid.Validate())
}
