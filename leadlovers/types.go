/******************************************************************************
 * Copyright (c) 2025-2026 LeadLovers                                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package leadlovers

// Lead is a CRM contact as the upstream API returns it. Field names follow
// the upstream JSON exactly; these types are passthrough, not a remodel.
type Lead struct {
	Code             int    `json:"Code"`
	Email            string `json:"Email"`
	Name             string `json:"Name"`
	MachineCode      string `json:"MachineCode"`
	Phone            string `json:"Phone"`
	Birthday         string `json:"Birthday"`
	Photo            string `json:"Photo"`
	City             string `json:"City"`
	State            string `json:"State"`
	Company          string `json:"Company"`
	Gender           string `json:"Gender"`
	Score            int    `json:"Score"`
	RegistrationDate string `json:"RegistrationDate"`
}

// Links carries upstream pagination cursors. Absent cursors come back null.
type Links struct {
	Self *string `json:"Self"`
	Next *string `json:"Next"`
	Prev *string `json:"Prev"`
}

// GetLeadsResponse is the /Leads page envelope.
type GetLeadsResponse struct {
	Data  []Lead `json:"Data"`
	Links Links  `json:"Links"`
}

// Tag is a label attached to a lead.
type Tag struct {
	ID    int    `json:"Id"`
	Title string `json:"Title"`
	Count int    `json:"Count"`
}

// MessageResponse is the single-message envelope used by create and delete.
type MessageResponse struct {
	Message string `json:"Message"`
}

// UpdateLeadResponse is the /Lead PUT envelope. On success the upstream
// echoes the full lead record; on failure only StatusCode and Message are
// populated. StatusCode is a string enum ("SUCCESS", "OK", "ERROR",
// "BadRequest", ...), not an HTTP status.
type UpdateLeadResponse struct {
	Code              int     `json:"Code,omitempty"`
	Email             string  `json:"Email,omitempty"`
	Name              string  `json:"Name,omitempty"`
	MachineCode       string  `json:"MachineCode,omitempty"`
	Phone             string  `json:"Phone,omitempty"`
	Birthday          string  `json:"Birthday,omitempty"`
	Photo             string  `json:"Photo,omitempty"`
	City              string  `json:"City,omitempty"`
	State             string  `json:"State,omitempty"`
	Company           string  `json:"Company,omitempty"`
	Gender            string  `json:"Gender,omitempty"`
	Score             int     `json:"Score,omitempty"`
	Source            string  `json:"Srce,omitempty"`
	Level             int     `json:"Level,omitempty"`
	ID                int     `json:"Id,omitempty"`
	Status            string  `json:"Status,omitempty"`
	Tags              []Tag   `json:"Tags,omitempty"`
	EmailSequenceCode int     `json:"EmailSequenceCode,omitempty"`
	SequenceLevelCode int     `json:"SequenceLevelCode,omitempty"`
	StatusCode        string  `json:"StatusCode"`
	Message           string  `json:"Message"`
	Exception         *Fault  `json:"Exception,omitempty"`
}

// Fault is the nested upstream exception detail.
type Fault struct {
	Message string `json:"Message"`
}

// successStatusCodes are the StatusCode values the upstream uses for an
// accepted update.
var successStatusCodes = map[string]bool{
	"SUCCESS":        true,
	"OK":             true,
	"Created":        true,
	"NoContent":      true,
	"PartialContent": true,
	"Accepted":       true,
}

// Succeeded reports whether the update envelope signals acceptance.
func (r UpdateLeadResponse) Succeeded() bool {
	return successStatusCodes[r.StatusCode]
}

// Machine is a funnel/automation container in the CRM.
type Machine struct {
	MachineCode  int    `json:"MachineCode"`
	MachineName  string `json:"MachineName"`
	MachineImage string `json:"MachineImage"`
	Views        int    `json:"Views"`
	Leads        int    `json:"Leads"`
}

// GetMachinesResponse is the paginated /Machines envelope.
type GetMachinesResponse struct {
	Items       []Machine `json:"Items"`
	CurrentPage int       `json:"CurrentPage"`
	Registers   int       `json:"Registers"`
}

// GetMachineDetailsResponse is the detail lookup envelope. Pagination fields
// are absent on this variant.
type GetMachineDetailsResponse struct {
	Items []Machine `json:"Items"`
}

// SequenceEmail identifies an email sequence inside a machine.
type SequenceEmail struct {
	SequenceCode int    `json:"SequenceCode"`
	SequenceName string `json:"SequenceName"`
}

// GetSequenceEmailsResponse is the /EmailSequences envelope.
type GetSequenceEmailsResponse struct {
	Items []SequenceEmail `json:"Items"`
}
