package common

// SessionCookieName is the cookie that carries the signed {username, key} pair.
const SessionCookieName = "login"

// DefaultImportSheet is the workbook sheet read by the item importer.
const DefaultImportSheet = "Wardrobe"
