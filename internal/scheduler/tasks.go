package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskLeadCRMResync = "leads.crm_resync"

type LeadCRMResyncPayload struct {
	LeadID string `json:"leadId"`
}

func NewLeadCRMResyncTask(payload LeadCRMResyncPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLeadCRMResync, data, asynq.MaxRetry(5)), nil
}

func ParseLeadCRMResyncPayload(task *asynq.Task) (LeadCRMResyncPayload, error) {
	var payload LeadCRMResyncPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return LeadCRMResyncPayload{}, err
	}
	return payload, nil
}
