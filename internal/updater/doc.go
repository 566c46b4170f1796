// Package updater tells users when a newer release of the tool has been
// published to the npm registry. The registry is queried at most once a day
// in the background; the answer is cached in the config directory and the
// notice is printed from the cache on the next run.
package updater
