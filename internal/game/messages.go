package game

// Outbound event payloads. Every message carries a messageType
// discriminator; the clients switch on it.

type phaseChangePayload struct {
	MessageType string `json:"messageType"`
	Phase       Phase  `json:"phase"`
	// CountdownSec is null for phases without a deadline (join, results).
	CountdownSec *int `json:"countdownSec"`
}

type playerCountPayload struct {
	MessageType string `json:"messageType"`
	Count       int    `json:"count"`
}

type maskSelectedPayload struct {
	MessageType string `json:"messageType"`
	Mask        string `json:"mask"`
}

type partLimitPayload struct {
	MessageType string `json:"messageType"`
	Limit       int    `json:"limit"`
}

type voteGalleryPayload struct {
	MessageType    string      `json:"messageType"`
	Mask           string      `json:"mask"`
	Entries        []VoteEntry `json:"entries"`
	ShowMaskOnVote bool        `json:"showMaskOnVote"`
}

type voteUpdatePayload struct {
	MessageType    string `json:"messageType"`
	TargetPlayerID int    `json:"targetPlayerId"`
	Count          int    `json:"count"`
}

type resultsPayload struct {
	MessageType string    `json:"messageType"`
	Mask        string    `json:"mask"`
	Winner      VoteEntry `json:"winner"`
	Votes       int       `json:"votes"`
}

func phaseChangeMsg(phase Phase, countdownSec *int) phaseChangePayload {
	return phaseChangePayload{MessageType: "phasechange", Phase: phase, CountdownSec: countdownSec}
}

func playerCountMsg(count int) playerCountPayload {
	return playerCountPayload{MessageType: "playercount", Count: count}
}

func maskSelectedMsg(mask string) maskSelectedPayload {
	return maskSelectedPayload{MessageType: "maskselected", Mask: mask}
}

func partLimitMsg(limit int) partLimitPayload {
	return partLimitPayload{MessageType: "partlimit", Limit: limit}
}

func voteGalleryMsg(mask string, entries []VoteEntry, showMask bool) voteGalleryPayload {
	return voteGalleryPayload{MessageType: "votegallery", Mask: mask, Entries: entries, ShowMaskOnVote: showMask}
}

func voteUpdateMsg(target, count int) voteUpdatePayload {
	return voteUpdatePayload{MessageType: "voteupdate", TargetPlayerID: target, Count: count}
}

func resultsMsg(mask string, winner VoteEntry, votes int) resultsPayload {
	return resultsPayload{MessageType: "results", Mask: mask, Winner: winner, Votes: votes}
}
