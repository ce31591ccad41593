package models

// StorageType selects where a completed workout is recorded.
type StorageType string

const (
	StorageLocalOnly      StorageType = "local_only"
	StorageLocalAndRemote StorageType = "local_and_remote"
)

// TemplateAction selects what happens to the originating template on finish.
type TemplateAction string

const (
	TemplateKeepOriginal   TemplateAction = "keep_original"
	TemplateUpdateExisting TemplateAction = "update_existing"
	TemplateSaveAsNew      TemplateAction = "save_as_new"
)

// CompletionOptions configures the completion pipeline for one finish call.
type CompletionOptions struct {
	StorageType     StorageType    `json:"storage_type" validate:"required,oneof=local_only local_and_remote"`
	ShareOnSocial   bool           `json:"share_on_social"`
	SocialMessage   string         `json:"social_message,omitempty"`
	TemplateAction  TemplateAction `json:"template_action,omitempty" validate:"omitempty,oneof=keep_original update_existing save_as_new"`
	NewTemplateName string         `json:"new_template_name,omitempty" validate:"required_if=TemplateAction save_as_new"`
}
