package cache

// HTTPKey builds the cache key of a remote response.
// The format is "http:<namespace>:<key>", e.g. "http:github:contributors:octo/hello".
func HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}
