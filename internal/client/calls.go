package client

import (
	"context"

	"github.com/penguingram/messenger/internal/model"
)

// The call methods forward to the backend's signaling stubs on behalf of
// the logged-in user. No media is negotiated.

// InitiateCall registers an outgoing call to peer.
func (c *Client) InitiateCall(ctx context.Context, peer model.User, callType model.CallType) (model.Call, error) {
	user, err := c.currentUser()
	if err != nil {
		return model.Call{}, err
	}
	resp, err := c.api.InitiateCall(ctx, user.ID, peer.ID, callType)
	if err != nil {
		return model.Call{}, err
	}
	if resp.Error != "" || resp.Call == nil || resp.Call.ID == "" {
		return model.Call{}, remote("initiate call", resp.Error, "response has no call id")
	}
	call := *resp.Call
	if call.Peer.ID == "" {
		call.Peer = peer
	}
	if call.Type == "" {
		call.Type = callType
	}
	return call, nil
}

// AcceptCall accepts an incoming call.
func (c *Client) AcceptCall(ctx context.Context, callID string) error {
	user, err := c.currentUser()
	if err != nil {
		return err
	}
	resp, err := c.api.AcceptCall(ctx, user.ID, callID)
	if err != nil {
		return err
	}
	if resp.Error != "" {
		return remote("accept call", resp.Error, "")
	}
	return nil
}

// EndCall hangs up a call.
func (c *Client) EndCall(ctx context.Context, callID string) error {
	user, err := c.currentUser()
	if err != nil {
		return err
	}
	resp, err := c.api.EndCall(ctx, user.ID, callID)
	if err != nil {
		return err
	}
	if resp.Error != "" {
		return remote("end call", resp.Error, "")
	}
	return nil
}
