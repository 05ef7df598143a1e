package cli

// asciiLogo is shown by the root help and the version command.
const asciiLogo = `
░█▀▀░▀█▀░█▀▀░█▄█░█▄█░█▀█
░▀▀█░░█░░█▀▀░█░█░█░█░█▀█
░▀▀▀░░▀░░▀▀▀░▀░▀░▀░▀░▀░▀`
