package hookstage

import (
	"errors"
)

// ChangeSetBidderRequest exposes typed mutation builders for the fields
// modules change most often, so mutation keys stay consistent in debug
// output.
func (c *ChangeSet[T]) BidderRequest() ChangeSetBidderRequest[T] {
	return ChangeSetBidderRequest[T]{changeSet: c}
}

type ChangeSetBidderRequest[T any] struct {
	changeSet *ChangeSet[T]
}

func (c ChangeSetBidderRequest[T]) BAdv(badv []string) {
	c.changeSet.AddMutation(func(p T) (T, error) {
		payload, err := castBidderRequestPayload(p)
		if err == nil {
			payload.BidRequest.BAdv = badv
		}
		return p, err
	}, MutationUpdate, "bidderrequest", "badv")
}

func (c ChangeSetBidderRequest[T]) BCat(bcat []string) {
	c.changeSet.AddMutation(func(p T) (T, error) {
		payload, err := castBidderRequestPayload(p)
		if err == nil {
			payload.BidRequest.BCat = bcat
		}
		return p, err
	}, MutationUpdate, "bidderrequest", "bcat")
}

func (c ChangeSetBidderRequest[T]) BApp(bapp []string) {
	c.changeSet.AddMutation(func(p T) (T, error) {
		payload, err := castBidderRequestPayload(p)
		if err == nil {
			payload.BidRequest.BApp = bapp
		}
		return p, err
	}, MutationUpdate, "bidderrequest", "bapp")
}

func castBidderRequestPayload[T any](p T) (BidderRequestPayload, error) {
	payload, ok := any(p).(BidderRequestPayload)
	if !ok {
		return BidderRequestPayload{}, errors.New("failed to cast BidderRequestPayload")
	}
	if payload.BidRequest == nil {
		return BidderRequestPayload{}, errors.New("payload contains a nil bid request")
	}
	return payload, nil
}
