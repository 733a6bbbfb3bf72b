package privacy

import (
	"fmt"
	"strings"
)

// Activity defines server actions which can be controlled directly
// by the publisher or via privacy policies.
type Activity int

const (
	ActivitySyncUser Activity = iota + 1
	ActivityCallBidder
	ActivityModifyUserFPD
	ActivityTransmitEIDs
	ActivityTransmitUserFPD
	ActivityTransmitPreciseGeo
	ActivityReportAnalytics
)

func (a Activity) String() string {
	switch a {
	case ActivitySyncUser:
		return "syncUser"
	case ActivityCallBidder:
		return "callBidder"
	case ActivityModifyUserFPD:
		return "modifyUfpd"
	case ActivityTransmitEIDs:
		return "transmitEids"
	case ActivityTransmitUserFPD:
		return "transmitUfpd"
	case ActivityTransmitPreciseGeo:
		return "transmitPreciseGeo"
	case ActivityReportAnalytics:
		return "reportAnalytics"
	}

	return ""
}

// ParseActivity maps a config-level activity name to its Activity value.
func ParseActivity(name string) (Activity, error) {
	switch strings.ToLower(name) {
	case "syncuser":
		return ActivitySyncUser, nil
	case "callbidder", "fetchbids":
		return ActivityCallBidder, nil
	case "modifyufpd", "enrichufpd":
		return ActivityModifyUserFPD, nil
	case "transmiteids":
		return ActivityTransmitEIDs, nil
	case "transmitufpd":
		return ActivityTransmitUserFPD, nil
	case "transmitprecisegeo", "transmitgeo":
		return ActivityTransmitPreciseGeo, nil
	case "reportanalytics":
		return ActivityReportAnalytics, nil
	}

	return 0, fmt.Errorf("unknown activity: %s", name)
}

// Activities returns the closed set of governed activities.
func Activities() []Activity {
	return []Activity{
		ActivitySyncUser,
		ActivityCallBidder,
		ActivityModifyUserFPD,
		ActivityTransmitEIDs,
		ActivityTransmitUserFPD,
		ActivityTransmitPreciseGeo,
		ActivityReportAnalytics,
	}
}
