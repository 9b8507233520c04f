package searchsimilar

import "strings"

// SplitHeaderKey splits a storage key of the form <base-path>/<file-name> at
// its last '/'. The base path may itself contain '/'. Both parts must be
// non-empty.
func SplitHeaderKey(key string) (basePath, fileName string, err error) {
	i := strings.LastIndexByte(key, '/')
	if i < 0 {
		return "", "", &ErrMalformedHeaderKey{Key: key, Reason: "no '/' separator"}
	}

	basePath, fileName = key[:i], key[i+1:]
	if basePath == "" {
		return "", "", &ErrMalformedHeaderKey{Key: key, Reason: "empty base path"}
	}
	if fileName == "" {
		return "", "", &ErrMalformedHeaderKey{Key: key, Reason: "empty file name"}
	}
	return basePath, fileName, nil
}
