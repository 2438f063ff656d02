// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package models

import (
	"errors"
)

var (
	ValidationErrorPlayerID        = errors.New("player_id must be positive")
	ValidationErrorDuplicatePool   = errors.New("duplicate player id in pool")
	ValidationErrorConditionalPool = errors.New("conditional ids must appear in player_ids")
)

var validationErrorCodeMap = map[error]int{
	ValidationErrorPlayerID:        510115,
	ValidationErrorDuplicatePool:   510116,
	ValidationErrorConditionalPool: 510117,
}

// ValidationErrorCode returns a code for the error.
// It returns 20002 if the error is not registered in the map.
func ValidationErrorCode(err error) int {
	code, ok := validationErrorCodeMap[err]
	if !ok {
		return 20002
	}
	return code
}
