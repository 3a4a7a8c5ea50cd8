package domain

import (
	"errors"
)

const DefaultTagColor = "#3B82F6"

var (
	MessageSuccessGetTags   = "success get tags"
	MessageSuccessCreateTag = "Tag created successfully"
	MessageSuccessUpdateTag = "Tag updated successfully"
	MessageSuccessDeleteTag = "Tag deleted successfully"
	MessageSuccessBulkTags  = "Bulk tag creation completed"

	MessageFailedGetTags       = "Failed to fetch tags"
	MessageFailedGetTag        = "Tag not found"
	MessageFailedCreateTag     = "Failed to create tag"
	MessageFailedUpdateTag     = "Failed to update tag"
	MessageFailedDeleteTag     = "Failed to delete tag"
	MessageFailedTagUsage      = "Failed to fetch tag usage"
	MessageFailedBulkTags      = "Tags array is required"
	MessageTagInUseDetailed    = "This tag is currently being used in one or more recipes. Please remove it from all recipes before deleting."
	MessageFailedGetTagRecipes = "Failed to fetch recipes"

	ErrTagNotFound      = errors.New("tag not found")
	ErrTagAlreadyExists = errors.New("tag already exists")
	ErrTagNameConflict  = errors.New("a tag with this name already exists")
	ErrTagInUse         = errors.New("cannot delete tag that is used in recipes")
)

type (
	TagRequest struct {
		Name  string  `json:"name"`
		Color *string `json:"color"`
	}

	BulkTagRequest struct {
		Tags []TagRequest `json:"tags"`
	}

	TagResponse struct {
		ID         string `json:"id"`
		Name       string `json:"name"`
		Color      string `json:"color"`
		UsageCount *int64 `json:"usageCount,omitempty"`
	}

	TagListResponse struct {
		Tags       []TagResponse `json:"tags"`
		Pagination *Pagination   `json:"pagination,omitempty"`
	}

	TagEnvelope struct {
		Tag TagResponse `json:"tag"`
	}

	BulkTagResponse struct {
		Results BulkResult[TagResponse] `json:"results"`
	}
)
