/******************************************************************************
 * Copyright (c) 2025-2026 LeadLovers                                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

// Package schemas holds the JSON-schema contracts for every tool, input and
// output, plus the validator that enforces them. The schemas are data, not
// code: handlers look them up by tool name.
package schemas

import "github.com/leadlovers/leadlovers-mcp/global"

// GetLeadsInput validates the lead listing arguments.
const GetLeadsInput = `{
  "type": "object",
  "required": ["page"],
  "additionalProperties": false,
  "properties": {
    "page": {"type": "number", "minimum": 1},
    "startDate": {"type": "string", "maxLength": 100},
    "endDate": {"type": "string", "maxLength": 100}
  }
}`

// GetLeadsOutput validates the lead page envelope.
const GetLeadsOutput = `{
  "type": "object",
  "required": ["Data", "Links"],
  "properties": {
    "Data": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "Code": {"type": "number"},
          "Email": {"type": "string"},
          "Name": {"type": "string"},
          "Phone": {"type": "string"},
          "Score": {"type": "number"}
        }
      }
    },
    "Links": {
      "type": "object",
      "properties": {
        "Self": {"type": ["string", "null"]},
        "Next": {"type": ["string", "null"]},
        "Prev": {"type": ["string", "null"]}
      }
    }
  }
}`

// CreateLeadInput validates the full registration payload.
const CreateLeadInput = `{
  "type": "object",
  "required": ["Name", "Email", "MachineCode", "EmailSequenceCode", "SequenceLevelCode"],
  "additionalProperties": false,
  "properties": {
    "Name": {"type": "string", "minLength": 2, "maxLength": 100},
    "Email": {"type": "string", "format": "email", "maxLength": 100},
    "MachineCode": {"type": "number", "minimum": 0},
    "EmailSequenceCode": {"type": "number", "minimum": 0},
    "SequenceLevelCode": {"type": "number", "minimum": 0},
    "Company": {"type": "string", "maxLength": 100},
    "Phone": {"type": "string", "maxLength": 100},
    "Photo": {"type": "string", "maxLength": 100},
    "City": {"type": "string", "maxLength": 100},
    "State": {"type": "string", "maxLength": 100},
    "Birthday": {"type": "string", "maxLength": 100},
    "Gender": {"type": "string", "maxLength": 100},
    "Score": {"type": "number", "minimum": 0},
    "Tag": {"type": "number", "minimum": 0},
    "Source": {"type": "string", "maxLength": 100},
    "Message": {"type": "string", "maxLength": 100},
    "Notes": {"type": "string", "maxLength": 100},
    "DynamicFields": {
      "type": "array",
      "items": {
        "type": "object",
        "additionalProperties": false,
        "properties": {
          "Id": {"type": "number", "minimum": 0},
          "Value": {"type": "string", "maxLength": 100}
        }
      }
    },
    "AdditionalInfo": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "AbandonedCartUrl": {"type": "string", "maxLength": 100}
      }
    },
    "Parameters": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "UTMSource": {"type": "string", "maxLength": 100},
        "UTMMedium": {"type": "string", "maxLength": 100},
        "UTMCampaign": {"type": "string", "maxLength": 100},
        "UTMTerm": {"type": "string", "maxLength": 100},
        "UTMContent": {"type": "string", "maxLength": 100}
      }
    }
  }
}`

// CreateLeadOutput validates the single-message envelope.
const CreateLeadOutput = `{
  "type": "object",
  "required": ["Message"],
  "properties": {
    "Message": {"type": "string"}
  }
}`

// UpdateLeadInput mirrors CreateLeadInput with only Email mandatory; the
// routing fields become optional on update.
const UpdateLeadInput = `{
  "type": "object",
  "required": ["Email"],
  "additionalProperties": false,
  "properties": {
    "Name": {"type": "string", "minLength": 2, "maxLength": 100},
    "Email": {"type": "string", "format": "email", "maxLength": 100},
    "MachineCode": {"type": "number", "minimum": 0},
    "EmailSequenceCode": {"type": "number", "minimum": 0},
    "SequenceLevelCode": {"type": "number", "minimum": 0},
    "Company": {"type": "string", "maxLength": 100},
    "Phone": {"type": "string", "maxLength": 100},
    "Photo": {"type": "string", "maxLength": 100},
    "City": {"type": "string", "maxLength": 100},
    "State": {"type": "string", "maxLength": 100},
    "Birthday": {"type": "string", "maxLength": 100},
    "Gender": {"type": "string", "maxLength": 100},
    "Score": {"type": "number", "minimum": 0},
    "Tag": {"type": "number", "minimum": 0},
    "Source": {"type": "string", "maxLength": 100},
    "Message": {"type": "string", "maxLength": 100},
    "Notes": {"type": "string", "maxLength": 100},
    "DynamicFields": {
      "type": "array",
      "items": {
        "type": "object",
        "additionalProperties": false,
        "properties": {
          "Id": {"type": "number", "minimum": 0},
          "Value": {"type": "string", "maxLength": 100}
        }
      }
    },
    "AdditionalInfo": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "AbandonedCartUrl": {"type": "string", "maxLength": 100}
      }
    },
    "Parameters": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "UTMSource": {"type": "string", "maxLength": 100},
        "UTMMedium": {"type": "string", "maxLength": 100},
        "UTMCampaign": {"type": "string", "maxLength": 100},
        "UTMTerm": {"type": "string", "maxLength": 100},
        "UTMContent": {"type": "string", "maxLength": 100}
      }
    }
  }
}`

// UpdateLeadOutput validates the update envelope; the upstream decides
// success through its string StatusCode.
const UpdateLeadOutput = `{
  "type": "object",
  "required": ["StatusCode", "Message"],
  "properties": {
    "StatusCode": {"type": "string"},
    "Message": {"type": "string"}
  }
}`

// DeleteLeadInput validates the funnel removal arguments. Email and phone
// are both optional; the upstream resolves whichever is present.
const DeleteLeadInput = `{
  "type": "object",
  "required": ["machineCode", "sequenceCode"],
  "additionalProperties": false,
  "properties": {
    "machineCode": {"type": "number", "minimum": 1},
    "sequenceCode": {"type": "number", "minimum": 1},
    "email": {"type": "string", "maxLength": 100},
    "phone": {"type": "string", "maxLength": 100}
  }
}`

// DeleteLeadOutput validates the single-message envelope.
const DeleteLeadOutput = CreateLeadOutput

// GetMachinesInput validates the catalog listing arguments.
const GetMachinesInput = `{
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "page": {"type": "number", "minimum": 0},
    "registers": {"type": "number", "minimum": 1},
    "details": {"type": "number", "minimum": 0},
    "types": {"type": "string", "minLength": 1, "maxLength": 255}
  }
}`

// GetMachinesOutput validates the paginated machine envelope.
const GetMachinesOutput = `{
  "type": "object",
  "required": ["Items", "CurrentPage", "Registers"],
  "properties": {
    "Items": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "MachineCode": {"type": "number"},
          "MachineName": {"type": "string"},
          "Views": {"type": "number"},
          "Leads": {"type": "number"}
        }
      }
    },
    "CurrentPage": {"type": "number"},
    "Registers": {"type": "number"}
  }
}`

// GetMachineDetailsInput validates the machine lookup arguments.
const GetMachineDetailsInput = `{
  "type": "object",
  "required": ["machineCode"],
  "additionalProperties": false,
  "properties": {
    "machineCode": {"type": "number", "minimum": 1}
  }
}`

// GetMachineDetailsOutput validates the detail envelope.
const GetMachineDetailsOutput = `{
  "type": "object",
  "required": ["Items"],
  "properties": {
    "Items": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "MachineCode": {"type": "number"},
          "MachineName": {"type": "string"}
        }
      }
    }
  }
}`

// GetEmailSequencesInput validates the sequence listing arguments.
const GetEmailSequencesInput = `{
  "type": "object",
  "required": ["machineCode"],
  "additionalProperties": false,
  "properties": {
    "machineCode": {"type": "number", "minimum": 0}
  }
}`

// GetEmailSequencesOutput validates the sequence list envelope.
const GetEmailSequencesOutput = `{
  "type": "object",
  "required": ["Items"],
  "properties": {
    "Items": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["SequenceCode", "SequenceName"],
        "properties": {
          "SequenceCode": {"type": "number"},
          "SequenceName": {"type": "string"}
        }
      }
    }
  }
}`

// CreateEmailContentInput validates the generation briefing. The 50-char
// floor forces briefings with enough substance to generate from.
const CreateEmailContentInput = `{
  "type": "object",
  "required": ["prompt"],
  "additionalProperties": false,
  "properties": {
    "prompt": {"type": "string", "minLength": 50}
  }
}`

// CreateEmailContentOutput validates the generated document envelope.
const CreateEmailContentOutput = `{
  "type": "object",
  "required": ["fullJson"],
  "properties": {
    "fullJson": {"type": "string"}
  }
}`

// inputSchemas maps tool name to input contract.
var inputSchemas = map[string]string{
	global.ToolGetLeads:           GetLeadsInput,
	global.ToolCreateLead:         CreateLeadInput,
	global.ToolUpdateLead:         UpdateLeadInput,
	global.ToolDeleteLead:         DeleteLeadInput,
	global.ToolGetMachines:        GetMachinesInput,
	global.ToolGetMachineDetails:  GetMachineDetailsInput,
	global.ToolGetEmailSequences:  GetEmailSequencesInput,
	global.ToolCreateEmailContent: CreateEmailContentInput,
}

// outputSchemas maps tool name to output contract.
var outputSchemas = map[string]string{
	global.ToolGetLeads:           GetLeadsOutput,
	global.ToolCreateLead:         CreateLeadOutput,
	global.ToolUpdateLead:         UpdateLeadOutput,
	global.ToolDeleteLead:         DeleteLeadOutput,
	global.ToolGetMachines:        GetMachinesOutput,
	global.ToolGetMachineDetails:  GetMachineDetailsOutput,
	global.ToolGetEmailSequences:  GetEmailSequencesOutput,
	global.ToolCreateEmailContent: CreateEmailContentOutput,
}
