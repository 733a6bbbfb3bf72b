package hookstage

// Entity specifies the type of object that was processed during the execution of the stage.
type Entity string

const (
	EntityHTTPRequest     Entity = "http-request"
	EntityAuctionRequest  Entity = "auction-request"
	EntityBidderRequest   Entity = "bidder-request"
	EntityBidderResponse  Entity = "bidder-response"
	EntityAuctionResponse Entity = "auction-response"
)
