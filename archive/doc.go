// Package archive reads and writes embeddings archives.
//
// An archive is a zip file holding one ".npy" array per identifier plus a
// reserved "__model_info__" entry with a JSON record describing the model that
// produced the vectors. This is the layout numpy.savez produces for
//
//	np.savez(path, **{id: vector, ...}, __model_info__=json.dumps(info))
//
// Entries are exposed in the archive's own (central directory) order.
package archive
