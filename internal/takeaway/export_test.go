package takeaway

var NewPunktSegmenterFrom = newPunktSegmenter
