package domain

import "errors"

var ErrStoreEntityNotFound = errors.New("store entity not found")
