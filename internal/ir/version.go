package ir

// EngineVersion is the pentagram release. It is reported by "pt --version".
const EngineVersion = "0.1.0"
