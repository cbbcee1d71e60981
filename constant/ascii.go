package constant

// AsciiArtLogo is the application's ASCII art banner shown on the root help screen.
const AsciiArtLogo = `
        _        _
   ___ | |_ __ _| | ___   _
  / _ \| __/ _` + "`" + ` | |/ / | | |
 | (_) | || (_| |   <| |_| |
  \___/ \__\__,_|_|\_\\__,_|
`
